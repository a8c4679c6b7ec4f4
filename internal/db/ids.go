package db

import "github.com/google/uuid"

const activityIDPrefix = "act-"

// idGenerator is the function used to generate activity IDs.
// It can be replaced in tests to control ID generation.
var idGenerator = defaultGenerateID

func defaultGenerateID() string {
	return activityIDPrefix + uuid.NewString()
}
