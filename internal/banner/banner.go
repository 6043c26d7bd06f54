// Package banner derives which cosmetic banners a user owns and plans
// equip changes. Everything here is pure; persistence lives in repository.
package banner

import (
	"sort"
	"time"

	"github.com/templui/heartroom/internal/model"
)

// Item is one catalog banner as seen by a particular user.
type Item struct {
	model.Banner
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

type RarityCount struct {
	Rarity   model.Rarity `json:"rarity"`
	Unlocked int          `json:"unlocked"`
	Total    int          `json:"total"`
}

type Stats struct {
	Total      int `json:"total"`
	Unlocked   int `json:"unlocked"`
	UserHearts int `json:"userHearts"`
}

type Collection struct {
	Items    []Item        `json:"banners"`
	ByRarity []RarityCount `json:"by_rarity"`
	Stats    Stats         `json:"stats"`
}

// Derive marks each catalog banner unlocked when the user holds an unlock
// record for it or has at least its required hearts. Items are ordered by
// rarity, then threshold.
func Derive(hearts int, catalog []*model.Banner, records []*model.UserBanner) Collection {
	unlockedAt := make(map[string]time.Time, len(records))
	for _, r := range records {
		unlockedAt[r.BannerID] = r.UnlockedAt
	}

	items := make([]Item, 0, len(catalog))
	for _, b := range catalog {
		item := Item{Banner: *b}
		if at, ok := unlockedAt[b.ID]; ok {
			item.Unlocked = true
			item.UnlockedAt = &at
		} else if hearts >= b.HeartsRequired {
			item.Unlocked = true
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Rarity.Rank(), items[j].Rarity.Rank()
		if ri != rj {
			return ri < rj
		}
		return items[i].HeartsRequired < items[j].HeartsRequired
	})

	counts := make(map[model.Rarity]*RarityCount, len(model.Rarities))
	byRarity := make([]RarityCount, len(model.Rarities))
	for i, r := range model.Rarities {
		byRarity[i].Rarity = r
		counts[r] = &byRarity[i]
	}

	stats := Stats{Total: len(items), UserHearts: hearts}
	for _, item := range items {
		c := counts[item.Rarity]
		if c != nil {
			c.Total++
		}
		if !item.Unlocked {
			continue
		}
		stats.Unlocked++
		if c != nil {
			c.Unlocked++
		}
	}

	return Collection{Items: items, ByRarity: byRarity, Stats: stats}
}

// IsUnlocked reports whether the collection has the banner unlocked.
func (c Collection) IsUnlocked(bannerID string) bool {
	for _, item := range c.Items {
		if item.ID == bannerID {
			return item.Unlocked
		}
	}
	return false
}

// Group splits items by rarity, preserving order within each tier.
func (c Collection) Group() map[model.Rarity][]Item {
	groups := make(map[model.Rarity][]Item)
	for _, item := range c.Items {
		groups[item.Rarity] = append(groups[item.Rarity], item)
	}
	return groups
}
