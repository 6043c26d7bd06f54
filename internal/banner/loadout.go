package banner

import (
	"errors"

	"github.com/templui/heartroom/internal/model"
)

var ErrLoadoutFull = errors.New("only two banners can be equipped at once")

type Action int

const (
	Equip Action = iota + 1
	Unequip
)

func (a Action) String() string {
	switch a {
	case Equip:
		return "equip"
	case Unequip:
		return "unequip"
	}
	return "none"
}

// Plan is the single write needed to toggle a banner.
type Plan struct {
	Action   Action
	BannerID string
	Position int
}

// Loadout is the set of banners a user currently has equipped.
type Loadout struct {
	Equipped []model.EquippedBannerView
}

func (l Loadout) IsEquipped(bannerID string) bool {
	for _, e := range l.Equipped {
		if e.BannerID == bannerID {
			return true
		}
	}
	return false
}

// Toggle plans unequipping an equipped banner or equipping it in the first
// free slot. A third banner is refused before anything is written.
func (l Loadout) Toggle(bannerID string) (Plan, error) {
	if l.IsEquipped(bannerID) {
		return Plan{Action: Unequip, BannerID: bannerID}, nil
	}

	if len(l.Equipped) >= model.MaxEquippedBanners {
		return Plan{}, ErrLoadoutFull
	}

	return Plan{Action: Equip, BannerID: bannerID, Position: l.freePosition()}, nil
}

func (l Loadout) freePosition() int {
	taken := make(map[int]bool, len(l.Equipped))
	for _, e := range l.Equipped {
		taken[e.Position] = true
	}
	for pos := 1; pos <= model.MaxEquippedBanners; pos++ {
		if !taken[pos] {
			return pos
		}
	}
	return len(l.Equipped) + 1
}
