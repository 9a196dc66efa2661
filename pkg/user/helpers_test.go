package user_test

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonMarshal = jsoniter.ConfigCompatibleWithStandardLibrary.Marshal
