package notify

import "encoding/json"

// pushMessage is the JSON frame sent over a push connection.
type pushMessage struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func pushPayload(subject, body string) []byte {
	// Marshal cannot fail for this shape.
	data, _ := json.Marshal(pushMessage{Type: "broadcast", Subject: subject, Body: body})
	return data
}
