package models

type GenerateItemsRequest struct {
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
	QuizOnly   bool       `json:"quiz_only"`
}

type GenerateItemsResponse struct {
	TopicID       int64  `json:"topic_id"`
	ItemsSaved    int    `json:"items_saved"`
	ItemsRejected int    `json:"items_rejected"`
	ModelUsed     string `json:"model_used"`
	Message       string `json:"message"`
}
