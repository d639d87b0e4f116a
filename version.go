package cascade

// Version is the current release of the Cascade library.
const Version = "0.1.0"
