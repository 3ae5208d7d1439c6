package codes

import (
	"crypto/rand"
	"math/big"
)

// Word lists for generating kid-friendly class codes
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "cool", "swift", "clever", "jolly",
	"mighty", "super", "star", "wild", "funny", "lucky", "magic", "bouncy",
	"cheerful", "daring", "eager", "flying", "gentle", "jazzy", "kindly",
	"lively", "merry", "noble", "perky", "quick", "royal", "snappy", "turbo",
	"zippy", "awesome", "bold", "cosmic", "epic", "fantastic", "groovy",
}

var animals = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "otter", "phoenix", "unicorn", "rabbit", "koala", "penguin",
	"falcon", "gecko", "badger", "beaver", "cheetah", "lemur", "meerkat",
	"puffin", "raccoon", "seal", "sparrow", "toucan", "walrus", "wombat",
}

// GenerateClassCode generates a readable code in the format
// "adjective-animal-NN", easy for a teacher to write on a whiteboard.
func GenerateClassCode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	animal, err := randomElement(animals)
	if err != nil {
		return "", err
	}

	num, err := rand.Int(rand.Reader, big.NewInt(90))
	if err != nil {
		return "", err
	}

	digits := []byte{byte('1' + num.Int64()/10), byte('0' + num.Int64()%10)}
	return adjective + "-" + animal + "-" + string(digits), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
