package domain

import "time"

type ProductStatus string

const (
	StatusPending  ProductStatus = "pending"
	StatusApproved ProductStatus = "approved"
)

type Product struct {
	ID          string        `gorm:"primaryKey;size:32" json:"id"`
	SellerID    string        `gorm:"size:32;index;not null" json:"seller"`
	MarketID    int           `gorm:"index;not null" json:"market"`
	Status      ProductStatus `gorm:"size:16;index;not null;default:pending" json:"status"`
	Title       string        `gorm:"size:120;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Price       int64         `json:"price"` // 最小货币单位
	Photos      []string      `gorm:"serializer:json;type:text" json:"photos"`

	Comments  []Comment         `gorm:"foreignKey:ProductID" json:"comments,omitempty"`
	Reactions []ProductReaction `gorm:"foreignKey:ProductID" json:"reactions,omitempty"`
	Buyers    []Buyer           `gorm:"foreignKey:ProductID" json:"buyers,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// VisibleTo 未审核商品仅卖家与版主/管理员可见
func (p *Product) VisibleTo(id Identity) bool {
	return p.Status == StatusApproved || p.SellerID == id.UserID || id.Rank.Elevated()
}

// Tally 统计已加载的反应
func (p *Product) Tally() ReactionTally {
	var t ReactionTally
	for _, r := range p.Reactions {
		switch r.Type {
		case Upvote:
			t.Upvotes++
		case Downvote:
			t.Downvotes++
		}
	}
	return t
}

type ReactionTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

type Comment struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	ProductID string    `gorm:"size:32;index;not null" json:"product"`
	AuthorID  string    `gorm:"size:32;index;not null" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Comment) TableName() string { return "product_comments" }

// ProductReaction 同一作者对同一商品至多一条
type ProductReaction struct {
	ID        string   `gorm:"primaryKey;size:32" json:"-"`
	ProductID string   `gorm:"size:32;not null;uniqueIndex:idx_product_reaction_author" json:"-"`
	AuthorID  string   `gorm:"size:32;not null;uniqueIndex:idx_product_reaction_author" json:"author"`
	Type      Polarity `gorm:"not null" json:"type"`
}

func (ProductReaction) TableName() string { return "product_reactions" }

// Buyer 已确认的购买记录
type Buyer struct {
	ID        string    `gorm:"primaryKey;size:32" json:"-"`
	ProductID string    `gorm:"size:32;not null;uniqueIndex:idx_product_buyer" json:"-"`
	UserID    string    `gorm:"size:32;not null;uniqueIndex:idx_product_buyer" json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Buyer) TableName() string { return "product_buyers" }

// ProductDraft 卖家提交的商品内容
type ProductDraft struct {
	MarketID    int      `json:"market" validate:"gt=0"`
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=5000"`
	Price       int64    `json:"price" validate:"gte=0"`
	Photos      []string `json:"photos" validate:"max=10,dive,required"`
}

// ListFilter 列表排序方式，数值与旧接口 :filter 参数一致
type ListFilter int

const (
	FilterNewest ListFilter = iota
	FilterOldest
	FilterTop
)

func (f ListFilter) Valid() bool { return f >= FilterNewest && f <= FilterTop }

type ProductQuery struct {
	Filter   ListFilter
	MarketID int // 0 表示全部市场
	Offset   int
	Limit    int
}

// CascadePolicy 删除商品时级联清理的范围
type CascadePolicy struct {
	Comments  bool
	Reactions bool
	Buyers    bool
}

func FullCascade() CascadePolicy { return CascadePolicy{Comments: true, Reactions: true, Buyers: true} }
