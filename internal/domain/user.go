package domain

import "time"

type Presence struct {
	Online bool      `json:"online"`
	Mode   int       `json:"mode"`
	Last   time.Time `json:"last"`
}

type Stats struct {
	Sales      int  `json:"sales"`
	Purchases  int  `json:"purchases"`
	Reputation int  `json:"reputation"`
	Hidden     bool `json:"hidden"`
}

type EmailState struct {
	Address    string     `gorm:"size:255" json:"address"`
	Status     bool       `json:"status"`
	Expiration *time.Time `json:"expiration"`
	Token      string     `gorm:"size:128" json:"token"`
}

type PasswordState struct {
	Hash       string     `gorm:"size:191" json:"-"`
	Status     bool       `json:"status"`
	Expiration *time.Time `json:"expiration"`
	Token      string     `gorm:"size:128" json:"token"`
}

type Suspension struct {
	Active bool       `json:"active"`
	Until  *time.Time `json:"until"`
	Reason string     `gorm:"size:255" json:"reason"`
}

// User 字段路径取自 json 名，如 email.status、online.mode、__v
type User struct {
	ID        string `gorm:"primaryKey;size:32" json:"id"`
	Name      string `gorm:"size:64" json:"name"`
	Username  string `gorm:"size:64;index" json:"username"`
	Specialty string `gorm:"size:64" json:"specialty"`
	Offer     string `gorm:"size:255" json:"offer"`
	Photo     string `gorm:"size:255" json:"photo"`
	Cover     string `gorm:"size:255" json:"cover"`

	Online     Presence      `gorm:"embedded;embeddedPrefix:online_" json:"online"`
	Stats      Stats         `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	Email      EmailState    `gorm:"embedded;embeddedPrefix:email_" json:"email"`
	Password   PasswordState `gorm:"embedded;embeddedPrefix:password_" json:"password"`
	Suspension Suspension    `gorm:"embedded;embeddedPrefix:suspension_" json:"suspension"`

	IP           string   `gorm:"size:64" json:"ip"`
	Tachi        int64    `json:"tachi"`
	Premium      bool     `json:"premium"`
	Rank         string   `gorm:"size:16;not null;default:authenticated" json:"rank"`
	Transactions []string `gorm:"serializer:json;type:text" json:"transactions"`
	Market       []string `gorm:"serializer:json;type:text" json:"market"`
	Device       []string `gorm:"serializer:json;type:text" json:"device"`
	Sessions     []string `gorm:"serializer:json;type:text" json:"sessions"`

	Reactions []UserReaction `gorm:"foreignKey:TargetID" json:"reactions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `gorm:"column:version" json:"__v"`
}

func (User) TableName() string { return "users" }

// UserReaction 他人对用户的反应
type UserReaction struct {
	ID       string   `gorm:"primaryKey;size:32" json:"-"`
	TargetID string   `gorm:"size:32;not null;uniqueIndex:idx_user_reaction_author" json:"-"`
	AuthorID string   `gorm:"size:32;not null;uniqueIndex:idx_user_reaction_author" json:"author"`
	Type     Polarity `gorm:"not null" json:"type"`
}

func (UserReaction) TableName() string { return "user_reactions" }

// PublicUser 对外公开的资料投影
type PublicUser struct {
	ID        string         `json:"id"`
	Offer     string         `json:"offer"`
	Photo     string         `json:"photo"`
	Cover     string         `json:"cover"`
	Stats     Stats          `json:"stats"`
	Online    Presence       `json:"online"`
	Name      string         `json:"name"`
	Username  string         `json:"username"`
	Specialty string         `json:"specialty"`
	Reactions []UserReaction `json:"reactions"`
}

func (u *User) Public() PublicUser {
	reactions := u.Reactions
	if reactions == nil {
		reactions = []UserReaction{}
	}
	return PublicUser{
		ID: u.ID, Offer: u.Offer, Photo: u.Photo, Cover: u.Cover,
		Stats: u.Stats, Online: u.Online, Name: u.Name, Username: u.Username,
		Specialty: u.Specialty, Reactions: reactions,
	}
}

type PhotoKind string

const (
	PhotoAvatar PhotoKind = "photo"
	PhotoCover  PhotoKind = "cover"
)

// Column 返回目标列；未知类型返回 false
func (k PhotoKind) Column() (string, bool) {
	switch k {
	case PhotoAvatar:
		return "photo", true
	case PhotoCover:
		return "cover", true
	}
	return "", false
}
