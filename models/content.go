package models

import "time"

// Show is one concert entry. Media is attached by id; the thumbnail media id
// overrides the first-image fallback on listings.
type Show struct {
	ID               string    `bson:"_id" json:"id"`
	Date             string    `bson:"date" json:"date"` // YYYY-MM-DD
	VenueID          string    `bson:"venue_id,omitempty" json:"venueId,omitempty"`
	Title            string    `bson:"title" json:"title"`
	Description      string    `bson:"description,omitempty" json:"description,omitempty"`
	MediaIDs         []string  `bson:"media_ids" json:"mediaIds"`
	ThumbnailMediaID string    `bson:"thumbnail_media_id,omitempty" json:"thumbnailMediaId,omitempty"`
	CreatedBy        string    `bson:"created_by" json:"createdBy"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}

type Venue struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
	Info    string `bson:"info,omitempty" json:"info,omitempty"`
}

// Update is a news post. Pinned updates surface on the landing page.
type Update struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	MediaIDs  []string  `bson:"media_ids" json:"mediaIds"`
	Visible   bool      `bson:"visible" json:"visible"`
	Pinned    bool      `bson:"pinned" json:"pinned"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// PressAttachment references an uploaded press file by storage key.
type PressAttachment struct {
	S3Key    string `bson:"s3_key" json:"s3Key"`
	Filename string `bson:"filename" json:"filename"`
	URL      string `bson:"-" json:"url,omitempty"`
}

type Press struct {
	ID              string            `bson:"_id" json:"id"`
	Title           string            `bson:"title" json:"title"`
	Description     string            `bson:"description,omitempty" json:"description,omitempty"`
	FileAttachments []PressAttachment `bson:"file_attachments" json:"fileAttachments"`
	Links           []string          `bson:"links" json:"links"`
	Public          bool              `bson:"public" json:"public"`
	Pinned          bool              `bson:"pinned" json:"pinned"`
	CreatedBy       string            `bson:"created_by" json:"createdBy"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
}

type Category struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// APIKey gates the embed endpoints. The key value is the record id.
type APIKey struct {
	ID        string    `bson:"_id" json:"id"`
	Label     string    `bson:"label" json:"label"`
	Scopes    []string  `bson:"scopes" json:"scopes"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// HasScope reports whether the key grants a scope ("*" grants all).
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}
