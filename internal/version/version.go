package version

// Version is the murmur release version.
const Version = "0.3.0"
