package catalog

// DefaultConfidence is the confidence assigned to defaults derived from
// screen ratios alone.
const DefaultConfidence = 0.5

// DefaultCoordinate is a seed coordinate produced for a fresh profile.
type DefaultCoordinate struct {
	Kind        ElementKind
	Name        string
	Description string
	X           int
	Y           int
}

// DefaultCoordinates computes one seed coordinate per catalog element for the
// given screen resolution. Pure: the same resolution always yields the same
// set, in step order.
func DefaultCoordinates(width, height int) []DefaultCoordinate {
	elems := Elements()
	out := make([]DefaultCoordinate, 0, len(elems))
	for _, e := range elems {
		x, y := e.DefaultPosition(width, height)
		out = append(out, DefaultCoordinate{
			Kind:        e.Kind,
			Name:        e.Name,
			Description: e.HelpText,
			X:           x,
			Y:           y,
		})
	}
	return out
}
