package model

type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

type Event struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}
