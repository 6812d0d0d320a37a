package tracer

import "errors"

var (
	ErrNoSceneData      = errors.New("tracer: no scene data uploaded")
	ErrNoCameraData     = errors.New("tracer: no camera data uploaded")
	ErrSceneNotPrepared = errors.New("tracer: scene materials have not been prepared for rendering")
	ErrInvalidChange    = errors.New("tracer: unsupported change type")
	ErrBlockOutOfRange  = errors.New("tracer: block request outside frame bounds")
)
