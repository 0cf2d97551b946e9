package media

import (
	"strings"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

// URLResolver turns stored image keys into URLs served under BaseURL.
type URLResolver struct {
	BaseURL string
}

// NewURLResolver creates a resolver rooted at baseURL.
func NewURLResolver(baseURL string) *URLResolver {
	return &URLResolver{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ResolveImageURL picks the thumbnail, then the cleaned image, then the
// original. Nil when the item carries no usable key.
func (r *URLResolver) ResolveImageURL(item *wardrobe.Item) *string {
	if item == nil {
		return nil
	}
	for _, key := range []*string{item.ThumbKey, item.CleanKey, item.OriginalKey} {
		if key == nil {
			continue
		}
		k := strings.TrimSpace(*key)
		if k == "" {
			continue
		}
		url := r.join(k)
		return &url
	}
	return nil
}

func (r *URLResolver) join(key string) string {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	base := strings.TrimRight(r.BaseURL, "/")
	return base + "/" + strings.TrimLeft(key, "/")
}
