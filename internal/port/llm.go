package port

// AnswerGenerator produces a natural-language answer for one question given
// retrieved context. A failure is per-question and never aborts a batch.
type AnswerGenerator interface {
	// GenerateAnswer answers the question from the supplied context.
	GenerateAnswer(question, context string) (string, error)

	// Available reports whether any underlying model is configured.
	Available() bool
}
