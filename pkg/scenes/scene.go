package scenes

import (
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
)

// Scene is a type alias for game.Scene so the screens in this package can be
// handed to game.SceneManager directly.
type Scene = game.Scene
