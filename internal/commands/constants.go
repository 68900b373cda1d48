package commands

// OptionsUsage is the usage summary shown for commands whose flags are
// entirely optional.
const OptionsUsage = "[OPTIONS]"
