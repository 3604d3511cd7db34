package pipeline

// systemInstruction pins the model to emitting one Adaptive Card JSON object
// and nothing else.
const systemInstruction = "You are an expert Adaptive Card designer. " +
	"You respond with exactly one valid JSON object describing an Adaptive Card " +
	"(top-level \"type\" must be \"AdaptiveCard\"). " +
	"Output only the JSON object: no prose, no markdown fences."

// buildMessages assembles the two-message prompt for one request. The
// description is opaque data: it is embedded verbatim, never parsed or
// transformed, so it cannot break downstream JSON handling.
//
// The user instruction content is a product contract, not a nicety: callers
// depend on cards that are visually appealing, carry structured input fields
// and interactive elements, and render list-like content as distinct,
// navigable items.
func buildMessages(description string) []ChatMessage {
	user := "Create an Adaptive Card for the following request: " + description + "\n\n" +
		"Make the card visually appealing. Include structured input fields and " +
		"buttons or other interactive elements where they make sense. " +
		"If the content is list-like, render the items as visually distinct, " +
		"navigable entries."
	return []ChatMessage{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: user},
	}
}
