package resolution

import (
	"unicode"
	"unicode/utf8"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

// ImageURLResolver picks the best displayable image URL for an item, or nil.
type ImageURLResolver interface {
	ResolveImageURL(item *wardrobe.Item) *string
}

// ImageURLResolverFunc adapts a function to ImageURLResolver.
type ImageURLResolverFunc func(item *wardrobe.Item) *string

func (f ImageURLResolverFunc) ResolveImageURL(item *wardrobe.Item) *string { return f(item) }

// ViewModelBuilder converts cached items into OutfitItemViewModels.
type ViewModelBuilder struct {
	images ImageURLResolver
}

// NewViewModelBuilder creates a builder. A nil resolver leaves every thumbnail empty.
func NewViewModelBuilder(images ImageURLResolver) *ViewModelBuilder {
	return &ViewModelBuilder{images: images}
}

// BuildResolved returns the resolved view-model for item.
func (b *ViewModelBuilder) BuildResolved(id string, item *wardrobe.Item) wardrobe.OutfitItemViewModel {
	vm := wardrobe.OutfitItemViewModel{
		ID:          id,
		DisplayName: displayName(item),
		Status:      wardrobe.StatusResolved,
	}
	if b.images != nil {
		vm.ThumbnailURL = b.images.ResolveImageURL(item)
	}

	if item.HasDetail() {
		if t := item.DetectedType(); t != "" {
			vm.Type = &t
		}
		if len(item.Detail.Colour) > 0 {
			vm.Colour = append([]string(nil), item.Detail.Colour...)
		}
	}
	return vm
}

// BuildMissing returns the placeholder view-model for an unresolved reference.
func (b *ViewModelBuilder) BuildMissing(id string) wardrobe.OutfitItemViewModel {
	return wardrobe.OutfitItemViewModel{
		ID:          id,
		DisplayName: wardrobe.UnknownItemLabel,
		Status:      wardrobe.StatusMissing,
	}
}

// displayName applies name, then detected type, then the fallback label.
func displayName(item *wardrobe.Item) string {
	if name := item.TrimmedName(); name != "" {
		return name
	}
	if t := item.DetectedType(); t != "" {
		return capitalize(t)
	}
	return wardrobe.UnknownItemLabel
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
