package catalog

import "campusinterview/internal/model"

func topic(scene model.Scene, edu model.EduType, question string, followups ...string) model.Topic {
	return model.Topic{
		Name:      model.TopicName(scene, edu),
		Scene:     scene,
		EduType:   edu,
		Questions: []string{question},
		Followups: followups,
	}
}

// Builtin returns the default 3x5 topic catalog. Each call returns a fresh copy.
func Builtin() []model.Topic {
	return []model.Topic{
		// school
		topic(model.SceneSchool, model.EduMoral,
			"Tell me about a time at school when you had to choose between what was easy and what was right.",
			"What made that choice difficult for you?",
			"How did the people around you react?",
			"Would you make the same choice today?"),
		topic(model.SceneSchool, model.EduIntellectual,
			"Describe a course or project at university that really changed the way you think.",
			"What was the moment it clicked for you?",
			"How do you use that way of thinking now?",
			"What was the hardest part to understand?"),
		topic(model.SceneSchool, model.EduPhysical,
			"How does sport or physical exercise fit into your life on campus?",
			"How do you keep it going during exam periods?",
			"Has exercise ever helped you through a stressful week?",
			"Who do you usually train or play with?"),
		topic(model.SceneSchool, model.EduAesthetic,
			"Which art, music or cultural activity at school has left the deepest impression on you?",
			"What exactly moved you about it?",
			"Did it change how you see everyday things?",
			"Have you tried creating something yourself?"),
		topic(model.SceneSchool, model.EduLabor,
			"Tell me about volunteer work, a campus job or a hands-on task you did at school.",
			"What did you actually do day to day?",
			"What skill did you pick up that you did not expect?",
			"How did it feel when the work was finished?"),

		// home
		topic(model.SceneHome, model.EduMoral,
			"What values has your family passed on to you, and how do they show up in your life?",
			"Can you give an example of a time you acted on one of them?",
			"Is there a family value you see differently now?",
			"Who in your family taught you the most about this?"),
		topic(model.SceneHome, model.EduIntellectual,
			"How does your family influence the way you learn and what you choose to study?",
			"Was there a conversation at home that shaped your choice?",
			"How do you share what you learn with your family?",
			"Did you ever disagree with them about it?"),
		topic(model.SceneHome, model.EduPhysical,
			"What role does physical activity or healthy living play in your family?",
			"Is there an activity you do together?",
			"How did those habits form?",
			"Have you tried to change any family habit?"),
		topic(model.SceneHome, model.EduAesthetic,
			"Is there a tradition, craft or piece of art at home that matters to you?",
			"What does it remind you of?",
			"How was it passed down to you?",
			"Would you keep it alive for your own family?"),
		topic(model.SceneHome, model.EduLabor,
			"What chores or responsibilities do you take on at home?",
			"How did you come to take those on?",
			"What did doing them teach you about your parents?",
			"Was there a task you found harder than expected?"),

		// community
		topic(model.SceneCommunity, model.EduMoral,
			"Describe a moment in your neighborhood or community when you helped someone or saw someone being helped.",
			"What made you decide to step in?",
			"How did the other person respond?",
			"Did it change how you see your community?"),
		topic(model.SceneCommunity, model.EduIntellectual,
			"What have you learned outside the classroom from your community, such as a library, club or local event?",
			"Who taught you the most in that setting?",
			"How is that learning different from school?",
			"Have you passed that knowledge on to anyone?"),
		topic(model.SceneCommunity, model.EduPhysical,
			"Have you joined any community sports, runs or outdoor activities?",
			"What kept you coming back?",
			"Did you meet anyone memorable there?",
			"How did it change your fitness or mood?"),
		topic(model.SceneCommunity, model.EduAesthetic,
			"Tell me about a public space, performance or festival in your community that you find beautiful.",
			"What details stay in your memory?",
			"Did you take part or watch from the side?",
			"How does it make you feel about where you live?"),
		topic(model.SceneCommunity, model.EduLabor,
			"Have you taken part in community service or public work, like a cleanup or helping at an event?",
			"What was your specific role?",
			"What was the most tiring part, and how did you handle it?",
			"Would you organize something similar yourself?"),
	}
}
