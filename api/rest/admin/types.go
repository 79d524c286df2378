package admin

type CreateIndexRequest struct {
	Column        string `json:"column"`
	Type          string `json:"type"`
	NumPartitions int    `json:"num_partitions"`
	NumSubVectors int    `json:"num_sub_vectors"`
	MetricType    string `json:"metric_type"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
