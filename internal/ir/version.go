package ir

// EngineVersion is recorded with every stored function result.
const EngineVersion = "0.1.0"
