package domain

import "time"

// Post is the slice of post content the recommender needs for enrichment.
// Full content lives with the content collaborator.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CategoryID  string    `json:"category_id"`
	AuthorID    string    `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

// ContentProfile is the derived taxonomy/engagement summary of a post,
// read-only to extractors.
type ContentProfile struct {
	PostID          string    `json:"post_id"`
	CategoryID      string    `json:"category_id"`
	TagIDs          []string  `json:"tag_ids"`
	AuthorID        string    `json:"author_id"`
	PublishedAt     time.Time `json:"published_at"`
	ViewCount       int64     `json:"view_count"`
	LikeCount       int64     `json:"like_count"`
	EngagementScore float64   `json:"engagement_score"`
}

// InterestKeys returns the interest-vector keys this post credits.
func (p *ContentProfile) InterestKeys() []string {
	keys := make([]string, 0, len(p.TagIDs)+1)
	if p.CategoryID != "" {
		keys = append(keys, CategoryKey(p.CategoryID))
	}
	for _, tag := range p.TagIDs {
		keys = append(keys, TagKey(tag))
	}
	return keys
}

func CategoryKey(categoryID string) string { return "category:" + categoryID }

func TagKey(tagID string) string { return "tag:" + tagID }
