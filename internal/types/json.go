package types

import "gorm.io/datatypes"

// StringList is a jsonb-backed string slice, used for engine sets, channels,
// competitor lists and the like.
type StringList = datatypes.JSONSlice[string]
