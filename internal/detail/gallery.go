package detail

// Keys understood by the lightbox.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Viewer is the gallery cursor shared by the thumbnail carousel and the
// full-screen lightbox. The carousel clamps at both ends; the lightbox wraps.
type Viewer struct {
	slides []string
	index  int
	open   bool
}

func NewViewer(slides []string) *Viewer {
	return &Viewer{slides: append([]string(nil), slides...)}
}

func (v *Viewer) Len() int     { return len(v.slides) }
func (v *Viewer) Index() int   { return v.index }
func (v *Viewer) IsOpen() bool { return v.open }

// Current returns the slide under the cursor, or "" for an empty gallery.
func (v *Viewer) Current() string {
	if len(v.slides) == 0 {
		return ""
	}
	return v.slides[v.index]
}

// SnapTo moves the carousel to i, clamped to the first and last slide.
func (v *Viewer) SnapTo(i int) {
	if len(v.slides) == 0 {
		return
	}
	v.index = max(0, min(i, len(v.slides)-1))
}

func (v *Viewer) ScrollPrev() { v.SnapTo(v.index - 1) }
func (v *Viewer) ScrollNext() { v.SnapTo(v.index + 1) }

// Open shows slide i in the lightbox. Out of range indexes are ignored.
func (v *Viewer) Open(i int) bool {
	if i < 0 || i >= len(v.slides) {
		return false
	}
	v.index = i
	v.open = true
	return true
}

func (v *Viewer) Close() { v.open = false }

// Prev steps back, wrapping from the first slide to the last.
func (v *Viewer) Prev() {
	if n := len(v.slides); n > 0 {
		v.index = (v.index - 1 + n) % n
	}
}

// Next steps forward, wrapping from the last slide to the first.
func (v *Viewer) Next() {
	if n := len(v.slides); n > 0 {
		v.index = (v.index + 1) % n
	}
}

// HandleKey applies a keyboard key to the lightbox and reports whether it was
// consumed. Keys are ignored while the lightbox is closed.
func (v *Viewer) HandleKey(key string) bool {
	if !v.open {
		return false
	}
	switch key {
	case KeyEscape:
		v.Close()
	case KeyArrowLeft:
		v.Prev()
	case KeyArrowRight:
		v.Next()
	default:
		return false
	}
	return true
}

// Lightbox is the rendered state of an open lightbox.
type Lightbox struct {
	Index     int    `json:"index"`
	Src       string `json:"src"`
	PrevIndex int    `json:"prev_index"`
	NextIndex int    `json:"next_index"`
}

// LightboxAt returns the lightbox opened on slide i of the view's gallery,
// or nil when i is not a slide.
func LightboxAt(view View, i int) *Lightbox {
	paths := make([]string, len(view.Gallery))
	for j, s := range view.Gallery {
		paths[j] = s.Src
	}

	v := NewViewer(paths)
	if !v.Open(i) {
		return nil
	}
	lb := &Lightbox{Index: v.Index(), Src: v.Current()}

	v.Prev()
	lb.PrevIndex = v.Index()
	v.Open(i)
	v.Next()
	lb.NextIndex = v.Index()
	return lb
}
