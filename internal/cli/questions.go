package cli

import "quiz-runner/internal/domain"

// sampleQuestions backs quiz.source=static so the server runs without any
// external question source.
func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"easy": {
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5", "22"}, CorrectOption: "4"},
			{Prompt: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Mercury"}, CorrectOption: "Mars"},
			{Prompt: "How many days are in a leap year?", Options: []string{"364", "365", "366", "367"}, CorrectOption: "366"},
			{Prompt: "What color do you get by mixing blue and yellow?", Options: []string{"Green", "Purple", "Orange", "Brown"}, CorrectOption: "Green"},
			{Prompt: "Which animal is the largest mammal?", Options: []string{"Elephant", "Blue whale", "Giraffe", "Orca"}, CorrectOption: "Blue whale"},
		},
		"medium": {
			{Prompt: "What is the chemical symbol for gold?", Options: []string{"Ag", "Au", "Gd", "Go"}, CorrectOption: "Au"},
			{Prompt: "In which year did the Berlin Wall fall?", Options: []string{"1987", "1989", "1991", "1993"}, CorrectOption: "1989"},
			{Prompt: "Which language has the most native speakers?", Options: []string{"English", "Hindi", "Spanish", "Mandarin Chinese"}, CorrectOption: "Mandarin Chinese"},
			{Prompt: "What is the smallest prime number?", Options: []string{"0", "1", "2", "3"}, CorrectOption: "2"},
			{Prompt: "Who painted the ceiling of the Sistine Chapel?", Options: []string{"Raphael", "Michelangelo", "Donatello", "Caravaggio"}, CorrectOption: "Michelangelo"},
		},
		"hard": {
			{Prompt: "What is the half-life of carbon-14, to the nearest thousand years?", Options: []string{"3,000", "5,700", "11,000", "24,000"}, CorrectOption: "5,700"},
			{Prompt: "Which element has atomic number 74?", Options: []string{"Tantalum", "Tungsten", "Rhenium", "Osmium"}, CorrectOption: "Tungsten"},
			{Prompt: "In what year was the Treaty of Westphalia signed?", Options: []string{"1618", "1648", "1683", "1713"}, CorrectOption: "1648"},
			{Prompt: "Which is the longest bone in the human body?", Options: []string{"Tibia", "Humerus", "Femur", "Fibula"}, CorrectOption: "Femur"},
			{Prompt: "Which mathematician proved the incompleteness theorems?", Options: []string{"Hilbert", "Turing", "Gödel", "Cantor"}, CorrectOption: "Gödel"},
		},
	}
}
