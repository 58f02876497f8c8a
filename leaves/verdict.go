package leaves

// Verdict is a leaf agent's judgement on one chunk. Answer is meaningless when Found is false.
type Verdict struct {
	Found  bool   `json:"found"`
	Answer string `json:"answer"`
}

const FailureAnswer = "Error processing chunk"

var failure = Verdict{
	Found:  false,
	Answer: FailureAnswer,
}
