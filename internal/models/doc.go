// Package models lists the OpenAI chat models that can be configured as
// the backend's translation model.
package models
