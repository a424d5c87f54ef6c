package geonote

// Version is the released version of geonote.
const Version = "0.2.0"
