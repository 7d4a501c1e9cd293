package planning

import "plan-dashboard/internal/models"

// NewStory returns the placeholder card the add button creates.
func NewStory() models.SuccessStory {
	return models.SuccessStory{
		Title:       "New Success Story",
		Subtitle:    "A brief, catchy subtitle",
		Description: "Describe the impact and success of this project or initiative.",
		Gradient:    "from-gray-400 to-gray-500",
		Link:        "#",
		ButtonText:  "Watch Episode",
	}
}
