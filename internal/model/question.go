package model

import "time"

// Question belongs to a video's quiz.
type Question struct {
	ID             int       `json:"id"`
	VideoID        int       `json:"video_id"`
	QuestionText   string    `json:"question_text"`
	SequenceNumber int       `json:"sequence_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Answers        []Answer  `json:"answers,omitempty"`
}

// Answer is one choice under a question. IsCorrect is never serialized on
// the learner-facing read model (see QuestionForLearner).
type Answer struct {
	ID             int    `json:"id"`
	QuestionID     int    `json:"question_id"`
	AnswerText     string `json:"answer_text"`
	IsCorrect      bool   `json:"is_correct"`
	SequenceNumber int    `json:"sequence_number"`
}

// QuestionForLearner is the learner read model: choices without correctness.
type QuestionForLearner struct {
	ID             int                `json:"id"`
	QuestionText   string             `json:"question_text"`
	SequenceNumber int                `json:"sequence_number"`
	Answers        []AnswerForLearner `json:"answers"`
}

// AnswerForLearner hides is_correct from the learner.
type AnswerForLearner struct {
	ID             int    `json:"id"`
	AnswerText     string `json:"answer_text"`
	SequenceNumber int    `json:"sequence_number"`
}

// ForLearner strips correctness flags from a question and its answers.
func (q Question) ForLearner() QuestionForLearner {
	out := QuestionForLearner{
		ID:             q.ID,
		QuestionText:   q.QuestionText,
		SequenceNumber: q.SequenceNumber,
		Answers:        make([]AnswerForLearner, 0, len(q.Answers)),
	}
	for _, a := range q.Answers {
		out.Answers = append(out.Answers, AnswerForLearner{
			ID:             a.ID,
			AnswerText:     a.AnswerText,
			SequenceNumber: a.SequenceNumber,
		})
	}
	return out
}

// CreateAnswerRequest is one choice in a question payload.
type CreateAnswerRequest struct {
	AnswerText     string `json:"answer_text" binding:"required,min=1"`
	IsCorrect      bool   `json:"is_correct"`
	SequenceNumber int    `json:"sequence_number" binding:"min=0"`
}

// CreateQuestionRequest is the payload for adding a question to a video.
// At least one choice must be marked correct; the scoring model assumes
// exactly one.
type CreateQuestionRequest struct {
	QuestionText   string                `json:"question_text" binding:"required,min=1,max=2000"`
	SequenceNumber int                   `json:"sequence_number" binding:"required,min=1"`
	Answers        []CreateAnswerRequest `json:"answers" binding:"required,min=2,dive"`
}
