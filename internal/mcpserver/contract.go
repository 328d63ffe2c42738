package mcpserver

// PasteUsage describes how pastes behave for LLM consumers.
const PasteUsage = `# Paste Usage

- A paste is plain UTF-8 text. Once created it is **immutable**: there is no
  update or delete. To change text, create a new paste.
- Keys are derived from the content, so publishing identical text twice
  returns the same key.
- Line endings are stored as LF.
- Blank or whitespace-only content is rejected by create_paste.
- The store enforces a maximum length; longer content fails with
  "Document exceeds maximum length." Split it into several pastes.
- Share the ` + "`shareUrl`" + ` returned by create_paste. ` + "`rawUrl`" + ` serves the text
  as text/plain.
`
