package models

type Country struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
