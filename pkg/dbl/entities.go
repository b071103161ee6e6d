package dbl

import "time"

// Bot is a bot listing.
type Bot struct {
	ID               string    `json:"id"`
	ClientID         string    `json:"clientid,omitempty"`
	Username         string    `json:"username"`
	Discriminator    string    `json:"discriminator"`
	Avatar           string    `json:"avatar,omitempty"`
	DefAvatar        string    `json:"defAvatar,omitempty"`
	Lib              string    `json:"lib"`
	Prefix           string    `json:"prefix"`
	ShortDescription string    `json:"shortdesc"`
	LongDescription  string    `json:"longdesc,omitempty"`
	Tags             []string  `json:"tags"`
	Website          string    `json:"website,omitempty"`
	Support          string    `json:"support,omitempty"`
	GitHub           string    `json:"github,omitempty"`
	Owners           []string  `json:"owners"`
	Guilds           []string  `json:"guilds,omitempty"`
	Invite           string    `json:"invite,omitempty"`
	Date             time.Time `json:"date"`
	Certified        bool      `json:"certifiedBot"`
	Vanity           string    `json:"vanity,omitempty"`
	Points           int       `json:"points"`
	MonthlyPoints    int       `json:"monthlyPoints"`
	DonateBotGuildID string    `json:"donatebotguildid,omitempty"`
	ServerCount      int       `json:"server_count,omitempty"`
	Shards           []int     `json:"shards,omitempty"`
	ShardCount       int       `json:"shard_count,omitempty"`
}

// BotStats holds the server counts a bot last reported.
type BotStats struct {
	ServerCount int   `json:"server_count"`
	Shards      []int `json:"shards"`
	ShardCount  int   `json:"shard_count"`
}

// SimpleUser is the reduced user shape returned in voter lists.
type SimpleUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar,omitempty"`
}

// Social lists a user's linked profiles.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Reddit    string `json:"reddit,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	GitHub    string `json:"github,omitempty"`
}

// User is a site user profile.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar,omitempty"`
	DefAvatar     string `json:"defAvatar,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Banner        string `json:"banner,omitempty"`
	Social        Social `json:"social"`
	Color         string `json:"color,omitempty"`
	Supporter     bool   `json:"supporter"`
	CertifiedDev  bool   `json:"certifiedDev"`
	Mod           bool   `json:"mod"`
	WebMod        bool   `json:"webMod"`
	Admin         bool   `json:"admin"`
}

// BotResult is one page of a bot search.
type BotResult struct {
	Results []Bot `json:"results"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Count   int   `json:"count"`
	Total   int   `json:"total"`
}
