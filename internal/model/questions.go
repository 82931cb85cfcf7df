package model

// QuestionsPerClaim is the number of verification questions a claimant answers.
const QuestionsPerClaim = 3

var verificationQuestions = map[Category][QuestionsPerClaim]string{
	CategoryElectronics: {
		"What brand and model is the device?",
		"What is shown on the lock screen or wallpaper?",
		"Describe any case, sticker or damage on it.",
	},
	CategoryDocuments: {
		"Whose name appears on the document?",
		"What type of document is it?",
		"What was kept together with the document?",
	},
	CategoryAccessories: {
		"What brand is the item?",
		"What material and color is it?",
		"Describe any engraving, mark or damage.",
	},
	CategoryKeys: {
		"How many keys are on the ring?",
		"Describe the key chain or tag.",
		"Which doors or locks do the keys open?",
	},
	CategoryClothing: {
		"What brand and size is it?",
		"What color and pattern is it?",
		"Was anything left in the pockets?",
	},
	CategoryOther: {
		"Describe the item in your own words.",
		"Where and when did you last have it?",
		"Name a detail only the owner would know.",
	},
}

// VerificationQuestions returns the ordered questions for a category.
// Unknown categories get the questions for CategoryOther.
func VerificationQuestions(c Category) []string {
	q, ok := verificationQuestions[c]
	if !ok {
		q = verificationQuestions[CategoryOther]
	}
	return q[:]
}
