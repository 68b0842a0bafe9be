/*
Copyright 2026 ChatIQA Authors
SPDX-License-Identifier: Apache-2.0
*/

package evaluator

import (
	"fmt"
	"strings"
)

// Personas holds the fixed system instructions for the three roles.
type Personas struct {
	Responder string
	Asker     string
	Judge     string
}

// DefaultPersonas returns the stock persona instructions.
func DefaultPersonas() Personas {
	return Personas{
		Responder: "You are an Image Analysis Expert specializing in evaluating the quality of images based on their specific types, such as portraits and landscapes. " +
			"Your task is to identify, analyze and assess the key factors that genuinely impact the quality of each image. " +
			"For example, in portrait images, prioritize factors like the clarity of the subject and background aesthetics, while in landscape images, focus on the overall composition and detail emphasis. " +
			"Avoid discussing photography techniques, image optimization processes, or any unrelated technical aspects. " +
			"Provide comprehensive, objective, and type-specific evaluations that highlight the most significant quality determinants for each image.",
		Asker: "You are an Inquisitive Analyst focused on understanding the true factors that affect the quality of different types of images, such as portraits and landscapes. " +
			"Your task is to ask insightful and targeted questions to the Image Analysis Expert to uncover the key quality determinants specific to each image type being evaluated. " +
			"For instance, inquire about aspects like subject focus in portraits or composition intricacies in landscapes. " +
			"Ensure that your questions remain relevant to assessing image quality and avoid straying into areas like photography techniques or image processing methods.",
		Judge: "You are a Conversation Moderator. Your task is to monitor the dialogue between the Inquisitive Analyst and the Image Analysis Expert. " +
			"Individually evaluate the Inquisitive Analyst's questions and the Image Analysis Expert's answers to ensure they strictly relate to assessing image quality based on this image's quality factors. " +
			"If a question from the Inquisitive Analyst is off-topic, politely remind them to focus on image quality assessment and prompt them to regenerate the question. " +
			"Similarly, if an answer from the Image Analysis Expert is off-topic, politely remind them to focus on image quality assessment and prompt them to regenerate the answer. " +
			"Your remind should start with \"Remind that:\"",
	}
}

func comparisonAssessmentPrompt(name string, score int) string {
	return fmt.Sprintf("Please assess the quality of the following image comprehensively. "+
		"This image is named %s, and its score is %d. "+
		"Identify the key aspects that determine the image's quality and provide a detailed assessment for each aspect.", name, score)
}

func targetAssessmentPrompt(name string) string {
	return fmt.Sprintf("Please assess the quality of the following image comprehensively, and based on the ComparisonIMG's score, "+
		"give this image a score between 0 and 100. "+
		"This image is named %s. When evaluating, consider both objective factors "+
		"(such as sharpness, contrast, color accuracy, etc.) and subjective user experience factors "+
		"(such as aesthetic appeal, emotional impact, etc.). "+
		"Identify the key aspects that determine the image's quality and provide a detailed assessment for each aspect, "+
		"ensuring that acceptable quality images are not unduly penalized.", name)
}

func questionPrompt(previousResponse string) string {
	return "Based on the following response from the Image Analysis Expert, generate a thoughtful and insightful question " +
		"to help the Image Analysis Expert correctly explore what factors really affect the quality of this image\n\n" +
		"Responder's Response:\n" + previousResponse
}

func judgeQuestionPrompt(question string) string {
	return "Evaluate the following question to determine if it is strictly on topic regarding image quality assessment. " +
		"Respond with 'on-topic' or 'off-topic'. If 'off-topic', provide a gentle reminder to the Inquisitive Analyst to focus on image quality assessment. " +
		"Your remind should start with \"Remind that:\"\n\n" +
		"Asker's Question:\n" + question
}

func judgeAnswerPrompt(answer string) string {
	return "Evaluate the following answer to determine if it is strictly on topic regarding image quality assessment. " +
		"Respond with 'on-topic' or 'off-topic'. If 'off-topic', provide a gentle reminder to the Image Analysis Expert to focus on image quality assessment. " +
		"Your remind should start with \"Remind that:\"\n\n" +
		"Responder's Response:\n" + answer
}

func regenerateQuestionPrompt(reminder, previousResponse string) string {
	return reminder + "\n\n" +
		"Based on the following response from the Image Analysis Expert, regenerate the question to stay on topic:\n\n" +
		"Responder's Response:\n" + previousResponse + "\n\n"
}

func regenerateAnswerPrompt(reminder, question, answer string) string {
	return reminder + "\n\n" +
		"Based on the following question, regenerate your answer to focus specifically on the key factors affecting the quality of this image:\n\n" +
		"Asker's Question:\n" + question + "\n\n" +
		"Responder's Original Response:\n" + answer
}

// keyFactorsSuffix is the standing instruction appended to every accepted
// question before the Responder answers it.
func keyFactorsSuffix(imageName string) string {
	return fmt.Sprintf("\n\nAfter answering the question, please state what you now think are the key factors "+
		"that really affect the quality of this image %s, and give a brief summary.", imageName)
}

func finalSummaryPrompt(cycles []CycleResult) string {
	var sb strings.Builder
	sb.WriteString("Conversation History:\n")
	for _, c := range cycles {
		fmt.Fprintf(&sb, "\nAsker's Question %d:\n%s\n\n", c.Index, c.Question)
		fmt.Fprintf(&sb, "Responder's Response %d:\n%s\n\n", c.Index, c.Answer)
	}
	sb.WriteString("\nCombine with your previous chat, provide a concise summary of the image quality " +
		"with the main factors that really affect the quality of this image, and state the final score " +
		"between 0 and 100 as \"Final Score: <number>\".")
	return sb.String()
}

func briefResultPrompt(summary string) string {
	return "I need a brief summary of the following assessment result which you have provided.\n\n" + summary
}
