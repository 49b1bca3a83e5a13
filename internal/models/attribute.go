package models

import "time"

// AttributeKind distinguishes the two owner-scoped named entities that
// recipes reference. Tags and ingredients are structurally identical and are
// handled by the same generic repository, service and handler code.
type AttributeKind string

const (
	KindTag        AttributeKind = "tag"
	KindIngredient AttributeKind = "ingredient"
)

// Tag is an owner-scoped label attached to recipes. Name uniqueness is per
// owner, not global.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_owner_name" json:"name"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_tags_owner_name" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Ingredient is an owner-scoped recipe component. Same rules as Tag.
type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_ingredients_owner_name" json:"name"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_ingredients_owner_name" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (t *Tag) GetID() uint         { return t.ID }
func (t *Tag) GetName() string     { return t.Name }
func (t *Tag) SetName(name string) { t.Name = name }
func (t *Tag) GetOwnerID() uint    { return t.OwnerID }
func (t *Tag) Kind() AttributeKind { return KindTag }

func (i *Ingredient) GetID() uint         { return i.ID }
func (i *Ingredient) GetName() string     { return i.Name }
func (i *Ingredient) SetName(name string) { i.Name = name }
func (i *Ingredient) GetOwnerID() uint    { return i.OwnerID }
func (i *Ingredient) Kind() AttributeKind { return KindIngredient }
