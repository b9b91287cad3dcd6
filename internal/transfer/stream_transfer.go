package transfer

type StreamCreation struct {
	Name  string `json:"name" form:"name"`
	Rules string `json:"rules" form:"rules"`
}

// StreamResultCreation is one matched post recorded against a stream.
type StreamResultCreation struct {
	TweetID   string         `json:"tweet_id" form:"tweet_id"`
	TweetText string         `json:"tweet_text" form:"tweet_text"`
	AuthorID  string         `json:"author_id" form:"author_id"`
	Data      map[string]any `json:"data" form:"-"`
}
