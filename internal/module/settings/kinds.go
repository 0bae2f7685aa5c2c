package settings

import (
	"sort"

	"github.com/simp-lee/touradmin/internal/domain"
)

// Registered aggregate kinds.
const (
	KindGuideSubscriptions = "guideSubscriptions"
	KindFooterSocialLinks  = "footerSocialLinks"
	KindGuideBanners       = "guideBanners"
)

// Kind describes one aggregate kind: how its entries are validated and
// whether removed entries are kept as tombstones.
type Kind struct {
	Name string
	// Tombstones is set for kinds whose entries may be referenced from
	// elsewhere, so removal keeps a deleted marker instead of dropping them.
	Tombstones bool
	// rules projects an entry onto a struct carrying validate tags.
	rules func(e domain.Entry) any
}

type subscriptionRules struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Price       int64  `json:"price" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,iso4217"`
}

type socialLinkRules struct {
	Platform string `json:"platform" validate:"required,oneof=facebook instagram twitter youtube tiktok linkedin whatsapp telegram"`
	URL      string `json:"url" validate:"required,url,max=500"`
	Title    string `json:"title" validate:"max=100"`
}

type bannerRules struct {
	ImageURL    string `json:"image_url" validate:"required,url,max=500"`
	LinkURL     string `json:"link_url" validate:"omitempty,url,max=500"`
	Title       string `json:"title" validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
}

var kinds = map[string]Kind{
	KindGuideSubscriptions: {
		Name: KindGuideSubscriptions,
		rules: func(e domain.Entry) any {
			return subscriptionRules{Title: e.Title, Description: e.Description, Price: e.Price, Currency: e.Currency}
		},
	},
	KindFooterSocialLinks: {
		Name: KindFooterSocialLinks,
		rules: func(e domain.Entry) any {
			return socialLinkRules{Platform: e.Platform, URL: e.URL, Title: e.Title}
		},
	},
	KindGuideBanners: {
		Name:       KindGuideBanners,
		Tombstones: true,
		rules: func(e domain.Entry) any {
			return bannerRules{ImageURL: e.ImageURL, LinkURL: e.LinkURL, Title: e.Title, Description: e.Description}
		},
	},
}

// LookupKind returns the registered kind with the given name.
func LookupKind(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, domain.NewAppError(domain.CodeNotFound, "unknown settings kind "+name, nil)
	}
	return k, nil
}

// KindNames lists the registered kinds in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
