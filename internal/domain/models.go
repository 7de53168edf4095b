package domain

import "time"

// PointsPerCorrectAnswer is the score increment for a correct answer unless configured otherwise.
const PointsPerCorrectAnswer = 10

// Account is a registered participant and their progress through the rounds.
type Account struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	PasswordHash       string     `json:"-"`
	CurrentRound       int        `json:"currentRound"`
	Score              int        `json:"score"`
	IsDisqualified     bool       `json:"isDisqualified"`
	LastSubmissionTime *time.Time `json:"lastSubmissionTime"`
}

// RoundStartedAt reports when the clock for the current round started.
func (a Account) RoundStartedAt() (time.Time, bool) {
	if a.LastSubmissionTime == nil {
		return time.Time{}, false
	}
	return *a.LastSubmissionTime, true
}

// TestCase is an illustrative input/output pair shown alongside a question.
type TestCase struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// Question is one challenge item of a round. Answer must never reach a client.
type Question struct {
	ID             int64      `json:"id" yaml:"id"`
	Round          int        `json:"round" yaml:"round"`
	QuestionNumber int        `json:"questionNumber" yaml:"question_number"`
	Content        string     `json:"content" yaml:"content"`
	ImageURL       *string    `json:"imageUrl" yaml:"image_url"`
	Answer         string     `json:"answer" yaml:"answer"`
	TimeLimit      int        `json:"timeLimit" yaml:"time_limit"` // seconds
	TestCases      []TestCase `json:"testCases" yaml:"test_cases"`
}

// Public strips the expected answer.
func (q Question) Public() PublicQuestion {
	testCases := make([]TestCase, len(q.TestCases))
	copy(testCases, q.TestCases)
	return PublicQuestion{
		ID:             q.ID,
		Round:          q.Round,
		QuestionNumber: q.QuestionNumber,
		Content:        q.Content,
		ImageURL:       q.ImageURL,
		TimeLimit:      q.TimeLimit,
		TestCases:      testCases,
	}
}

// PublicQuestion is the client-facing view of a Question.
type PublicQuestion struct {
	ID             int64      `json:"id"`
	Round          int        `json:"round"`
	QuestionNumber int        `json:"questionNumber"`
	Content        string     `json:"content"`
	ImageURL       *string    `json:"imageUrl"`
	TimeLimit      int        `json:"timeLimit"`
	TestCases      []TestCase `json:"testCases"`
}

// Submission is an immutable record of one answer attempt.
type Submission struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"accountId"`
	QuestionID  int64     `json:"questionId"`
	Answer      string    `json:"answer"`
	IsCorrect   bool      `json:"isCorrect"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// AnswerSubmission models the answer payload sent by clients.
type AnswerSubmission struct {
	QuestionID int64  `json:"questionId"`
	Answer     string `json:"answer"`
}

// AnswerResult is the only thing a client learns about its attempt.
type AnswerResult struct {
	IsCorrect bool `json:"isCorrect"`
}
