package model

import (
	"fmt"
	"strings"
)

// Scene is the setting a topic is anchored in
type Scene string

const (
	SceneSchool    Scene = "school"
	SceneHome      Scene = "home"
	SceneCommunity Scene = "community"
)

// EduType is one of the five developmental dimensions
type EduType string

const (
	EduMoral        EduType = "moral"
	EduIntellectual EduType = "intellectual"
	EduPhysical     EduType = "physical"
	EduAesthetic    EduType = "aesthetic"
	EduLabor        EduType = "labor"
)

// Scenes lists every scene in catalog order
var Scenes = []Scene{SceneSchool, SceneHome, SceneCommunity}

// EduTypes lists every dimension in catalog order
var EduTypes = []EduType{EduMoral, EduIntellectual, EduPhysical, EduAesthetic, EduLabor}

// Topic is a (scene, dimension) pairing with its core question and preset follow-ups
type Topic struct {
	Name      string   `json:"name" bson:"name" yaml:"name"` // "<scene>-<dimension>"
	Scene     Scene    `json:"scene" bson:"scene" yaml:"scene"`
	EduType   EduType  `json:"eduType" bson:"eduType" yaml:"edu_type"`
	Questions []string `json:"questions" bson:"questions" yaml:"questions"` // first is the core question
	Followups []string `json:"followups" bson:"followups" yaml:"followups"` // preset fallback pool
}

// TopicName builds the canonical "<scene>-<dimension>" name
func TopicName(scene Scene, edu EduType) string {
	return string(scene) + "-" + string(edu)
}

// CoreQuestion returns the canonical question of the topic
func (t *Topic) CoreQuestion() string {
	if len(t.Questions) == 0 {
		return ""
	}
	return t.Questions[0]
}

// Validate checks the topic invariants and fills in a missing name
func (t *Topic) Validate() error {
	if !validScene(t.Scene) {
		return fmt.Errorf("topic %q: unknown scene %q", t.Name, t.Scene)
	}
	if !validEduType(t.EduType) {
		return fmt.Errorf("topic %q: unknown edu type %q", t.Name, t.EduType)
	}
	if len(t.Questions) == 0 || strings.TrimSpace(t.Questions[0]) == "" {
		return fmt.Errorf("topic %q: no core question", t.Name)
	}
	if t.Name == "" {
		t.Name = TopicName(t.Scene, t.EduType)
	}
	return nil
}

func validScene(s Scene) bool {
	for _, v := range Scenes {
		if v == s {
			return true
		}
	}
	return false
}

func validEduType(e EduType) bool {
	for _, v := range EduTypes {
		if v == e {
			return true
		}
	}
	return false
}
