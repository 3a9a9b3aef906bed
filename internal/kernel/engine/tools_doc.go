package engine

// toolVocabulary teaches a project-bound agent the fixed tool
// invocation forms the Tool-Call Parser recognises. Paths are always
// relative to the bound project root.
const toolVocabulary = `--- Available tools ---
@read_file("path/relative/to/project")
@write_file(path/relative/to/project, """full file content, any characters including newlines, until the closing triple quote""")
@append_file(path/relative/to/project, """content to append""")
@list_dir("path/relative/to/project")
@search_files(glob_pattern, query)
@run_command("shell command")
@report_error(short description of what went wrong)

Paths are always relative to the project root; do not use absolute paths.
Use the triple-quote form for write_file/append_file so multi-line content is unambiguous.
`
