package ops

import "encoding/json"

// Encode renders the uniform operation outcome fed back into the
// conversation: {"success":true, ...payload} or
// {"success":false,"error":"..."}. Failures here are data for the reasoner,
// never loop faults.
func Encode(payload map[string]any, err error) string {
	body := map[string]any{"success": err == nil}
	if err != nil {
		body["error"] = err.Error()
	} else {
		for k, v := range payload {
			if k == "success" {
				continue
			}
			body[k] = v
		}
	}

	raw, merr := json.Marshal(body)
	if merr != nil {
		// Payload contained something unmarshalable; still return a valid
		// result so the request is never silently dropped.
		return `{"success":false,"error":"operation result could not be encoded"}`
	}
	return string(raw)
}
