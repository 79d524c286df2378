package health

import "time"

type Response struct {
	Status    string     `json:"status"`
	Service   string     `json:"service"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
