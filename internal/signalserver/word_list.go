package signalserver

var animals = []string{
	"kitten", "puppy", "bunny", "panda", "koala", "fox", "otter", "hedgehog", "squirrel", "hamster",
	"fawn", "foal", "lamb", "calf", "raccoon", "mole", "ferret", "beaver", "dolphin", "narwhal",
	"penguin", "flamingo", "pelican", "sparrow", "robin", "toucan", "parrot", "canary", "heron", "wren",
}

var adjectives = []string{
	"tiny", "happy", "sleepy", "fluffy", "sparkly", "cheery", "silly", "jolly", "cozy", "shiny",
	"brave", "calm", "eager", "gentle", "keen", "lively", "merry", "quick", "sunny", "witty",
}

var nouns = []string{
	"sunbeam", "stardust", "pepper", "muffin", "bubble", "sprout", "glimmer", "whisker", "echo", "jelly",
	"marble", "maple", "cocoa", "hazel", "breeze", "meadow", "willow", "ember", "poppy", "pixel",
}
