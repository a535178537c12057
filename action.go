package grove

// Outcome is the result of delivering an action to a component.
type Outcome uint8

const (
	Pass     Outcome = iota // keep propagating to the entity's children
	Consumed                // stop before the entity's children
)

// Action is a message dispatched through the scene graph. The set of action
// kinds is closed; Message carries anything outside it.
type Action interface {
	// Name returns the conventional action name, e.g. "update".
	Name() string
	isAction()
}

// Update advances simulation by DT seconds.
type Update struct {
	DT float64
}

// Render asks renderable components to push commands into Queue, with View
// applied on top of each entity's world matrix.
type Render struct {
	Queue *RenderQueue
	View  Matrix
}

// RenderLayer is Render restricted to a single layer.
type RenderLayer struct {
	Layer int
	Queue *RenderQueue
	View  Matrix
}

// View reports the size of the output surface.
type View struct {
	Width, Height float64
}

// CameraChanged announces the view matrix a camera is about to render with.
type CameraChanged struct {
	Camera *Entity
	View   Matrix
}

// Message is a free-form action identified by Kind.
type Message struct {
	Kind string
	Args []any
}

func (Update) Name() string        { return "update" }
func (Render) Name() string        { return "render" }
func (RenderLayer) Name() string   { return "render-layer" }
func (View) Name() string          { return "view" }
func (CameraChanged) Name() string { return "camera-changed" }
func (m Message) Name() string     { return m.Kind }

func (Update) isAction()        {}
func (Render) isAction()        {}
func (RenderLayer) isAction()   {}
func (View) isAction()          {}
func (CameraChanged) isAction() {}
func (Message) isAction()       {}
