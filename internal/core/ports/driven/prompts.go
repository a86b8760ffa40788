package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found on disk, the embedded default is returned.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem instructs the model to answer only from the supplied context.
	// The template has one %s placeholder for the joined chunk texts.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the question. It has one %s placeholder.
	PromptAnswerUser = "answer_user"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses the built-in defaults.
	SetPromptStore(store PromptStore)
}
