package keywordize

// Version of the keywordize module.
const Version = "0.4.0"
