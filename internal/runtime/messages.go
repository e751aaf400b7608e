package runtime

const (
	msgWelcome = "👋 Hi! I work with the Moscow gas station registry.\n\n" +
		"Send me the registry as a .csv or .json file and I will help you sort or filter it, " +
		"then send the result back as a file.\n\nType /help to learn more."

	msgHelp = "ℹ️ How it works:\n\n" +
		"1. Upload a .csv or .json export of the gas station registry.\n" +
		"2. Choose Sort or Filter in the menu.\n" +
		"3. Sort by test date or by any field, ascending or descending.\n" +
		"4. Filter by district, by owner, by administrative area and owner, or by any one or two fields.\n" +
		"5. Pick JSON or CSV to receive the result.\n\n" +
		"Use ⬅️ Back to return to the previous menu. Upload a new file at any time to start over."

	msgProcessingFailed = "⚠️ Something went wrong while processing your request. " +
		"Send /start to begin again; your uploaded data is kept."
)

const (
	msgUnknownCommand   = "🤷 I don't know this command. Try /start or /help."
	msgMenuMode         = "📋 You are in menu mode: text messages are not processed here. Use the buttons or see /help."
	msgUploadFirst      = "📎 Upload a .csv or .json file first."
	msgUploadOK         = "✅ File processed: %d records loaded."
	msgUnknownToken     = "Unknown command: %s"
	msgChooseSortField  = "Pick the field to sort by first."
	msgChooseFirstField = "Pick the field to filter by first."
	msgMatches          = "✅ Found %d matching records."
	msgExportCaption    = "🗂 Updated data"
)

// Replies to rejected requests.
const (
	msgNoData         = "❌ There is no data to process. Upload a file or run a query first."
	msgIncomplete     = "❌ Some records have no test date, so the data cannot be sorted."
	msgTypeMismatch   = "❌ %q is not a valid %s for %s. Expected %s."
	msgMalformed      = "❌ Send exactly two non-empty lines: the first for %s, the second for %s."
	msgNoMatch        = "❌ No matching records found."
	msgCollaborator   = "❌ %v"
	msgRetry          = "\n\n🔃 Try again:"
	msgFilterSingle   = "🔎 Enter the %s to filter by (%s):"
	msgFilterCompound = "🔎 Enter two lines:\n1. %s (%s)\n2. %s (%s)"
)

const (
	promptRoot      = "What would you like to do with the data?"
	promptSort      = "How would you like to sort the data?"
	promptFilter    = "How would you like to filter the data?"
	promptSortField = "Pick the field to sort by:"
	promptSortSide  = "Sort by %s in which order?"
	promptFilterBy  = "Pick the first field to filter by:"
	promptSecond    = "Filter by %s only, or pick a second field:"
	promptSorted    = "✅ Sorted %d records by %s (%s).\n\nChoose the file format:"
	promptExport    = "Choose the file format:"
	directionAsc    = "ascending"
	directionDesc   = "descending"
)
