// Package suggest defines the Suggestion type and the classifier that turns
// raw model output into one. A suggestion is either a pure insertion or an
// edit (a span to delete plus text to insert), distinguished explicitly by
// kind rather than by which fields happen to be set.
package suggest
