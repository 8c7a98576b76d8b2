package catalog

import "fmt"

// ElementKind identifies one tappable/fillable UI target in the blog app.
type ElementKind string

const (
	// Main navigation
	KindMainPlusButton ElementKind = "main_plus_button"
	KindWriteMenuBlog  ElementKind = "write_menu_blog"

	// Editor fields
	KindTitleField   ElementKind = "title_field"
	KindContentField ElementKind = "content_field"

	// Editor toolbar
	KindImageButton      ElementKind = "image_button"
	KindTextSizeButton   ElementKind = "text_size_button"
	KindTextSizeSmallest ElementKind = "text_size_smallest"
	KindLinkButton       ElementKind = "link_button"

	// Publishing
	KindPublishButton ElementKind = "publish_button"
	KindConfirmButton ElementKind = "confirm_button"

	// Sharing
	KindShareButton   ElementKind = "share_button"
	KindCopyURLButton ElementKind = "copy_url_button"
)

// aliases maps legacy and deprecated element names to their canonical kind.
// Consulted only when parsing external input; stored data always holds the
// canonical value.
var aliases = map[string]ElementKind{
	"write_button":      KindMainPlusButton,
	"home_button":       KindWriteMenuBlog,
	"copy_link_button":  KindCopyURLButton,
	"bold_button":       KindTextSizeSmallest,
	"white_color":       KindTextSizeSmallest,
	"text_color_button": KindTextSizeButton,
}

// ParseElementKind canonicalizes an element kind from external input,
// resolving deprecated aliases. Unknown names are rejected.
func ParseElementKind(s string) (ElementKind, error) {
	kind := ElementKind(s)
	if _, ok := byKind[kind]; ok {
		return kind, nil
	}
	if canonical, ok := aliases[s]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("unknown element kind: %q", s)
}

func (k ElementKind) String() string { return string(k) }
