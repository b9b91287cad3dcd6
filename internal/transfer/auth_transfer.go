package transfer

type LoginRedirect struct {
	URL           string `json:"url"`
	RequestToken  string `json:"-"`
	RequestSecret string `json:"-"`
}

type TokenStatus struct {
	ConsumerKey       string `json:"consumer_key"`
	ConsumerSecret    string `json:"consumer_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	Complete          bool   `json:"complete"`
	LastLogin         string `json:"last_login,omitempty"`
}
