package versioning

var Version = "v0.1.0"
