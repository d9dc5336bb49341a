package services

import "errors"

var (
  // ErrNotFound is returned for unknown model/version/scenario ids.
  ErrNotFound = errors.New("not found")

  // ErrRunInFlight is returned when an enqueue is attempted while a queued
  // or running generation run already exists for the model.
  ErrRunInFlight = errors.New("generation run already in flight")

  // ErrArtifactShape is returned when the modeler response parses as JSON
  // but does not match the artifact schema.
  ErrArtifactShape = errors.New("artifact does not match schema")

  // ErrFileMissing is returned when a recorded file path no longer exists in
  // the store at download time.
  ErrFileMissing = errors.New("rendered file missing from store")

  // ErrInvalidInput is returned for request payloads that fail service-level
  // validation (out-of-range percentages, negative amounts, missing name).
  ErrInvalidInput = errors.New("invalid input")
)
