package models

import "time"

// ContentBlock is one ordered unit of post content. Type is "text" or
// "image"; text blocks carry Content, image blocks carry Src and an
// optional Caption.
type ContentBlock struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Src     string `json:"src,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type Post struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Author      string         `json:"author"`
	Date        string         `json:"date"`
	Slug        string         `json:"slug"`
	Summary     string         `json:"summary,omitempty"`
	CoverImage  string         `json:"coverImage,omitempty"`
	Content     []ContentBlock `json:"content"`
	ContentType string         `json:"contentType,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Text      string    `json:"text"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
