package models

type AskRequest struct {
	Question string `json:"question" binding:"required,max=1000"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}
