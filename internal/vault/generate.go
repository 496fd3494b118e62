package vault

import (
	"fmt"
	"strings"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// frontmatter renders an Obsidian frontmatter block. Pairs preserve
// insertion order; list values render in flow style.
type fmPair struct {
	key   string
	value any
}

func frontmatter(pairs []fmPair) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, p := range pairs {
		switch v := p.value.(type) {
		case []string:
			b.WriteString(fmt.Sprintf("%s: [%s]\n", p.key, strings.Join(v, ", ")))
		default:
			b.WriteString(fmt.Sprintf("%s: %v\n", p.key, v))
		}
	}
	b.WriteString("---")
	return b.String()
}

// wikiLinks renders a comma-separated list of [[wiki-links]] for graph
// connectivity.
func wikiLinks(names []string) string {
	links := make([]string, len(names))
	for i, n := range names {
		links[i] = "[[" + n + "]]"
	}
	return strings.Join(links, ", ")
}

// truncateNotes collapses newlines and caps notes for table cells.
// Truncation counts runes so a multi-byte character is never split.
func truncateNotes(notes string) string {
	notes = strings.ReplaceAll(notes, "\n", " ")
	if runes := []rune(notes); len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return notes
}

func generateSprintFile(sprint *workindex.Sprint, project string) string {
	tags := append([]string{project, "sprint", string(sprint.Status)}, sprint.Themes...)
	fm := frontmatter([]fmPair{
		{"type", "sprint"},
		{"id", sprint.ID},
		{"project", project},
		{"status", string(sprint.Status)},
		{"themes", sprint.Themes},
		{"tags", tags},
	})

	var b strings.Builder
	b.WriteString(fm + "\n\n# " + sprint.Title + "\n\n")

	if sprint.Goal != "" {
		b.WriteString("## Goal\n\n" + sprint.Goal + "\n\n")
	}

	if len(sprint.Stories) > 0 {
		b.WriteString("## Stories\n\n")
		b.WriteString("| ID | Status | Notes |\n")
		b.WriteString("|-----|--------|-------|\n")
		for _, story := range sprint.Stories {
			fmt.Fprintf(&b, "| [[%s]] | %s | %s |\n", story.ID, story.Status, truncateNotes(story.Notes))
		}
		b.WriteString("\n")
	}

	if len(sprint.Themes) > 0 {
		b.WriteString("## Themes\n\n" + wikiLinks(sprint.Themes) + "\n\n")
	}

	if sprint.File != "" {
		b.WriteString("## Source\n\nSprint doc: `" + sprint.File + "`\n\n")
	}

	return b.String()
}

func generateStoryFile(story *workindex.Story, sprint *workindex.Sprint, project string) string {
	tags := append([]string{project, "story", string(story.Status)}, sprint.Themes...)
	fm := frontmatter([]fmPair{
		{"type", "story"},
		{"id", story.ID},
		{"project", project},
		{"sprint", sprint.ID},
		{"status", string(story.Status)},
		{"themes", sprint.Themes},
		{"tags", tags},
	})

	themeLinks := "None"
	if len(sprint.Themes) > 0 {
		themeLinks = wikiLinks(sprint.Themes)
	}

	var b strings.Builder
	b.WriteString(fm + "\n\n# " + story.ID + "\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "**Sprint:** [[%s]]  \n", sprint.ID)
	fmt.Fprintf(&b, "**Status:** %s  \n", story.Status)
	fmt.Fprintf(&b, "**Themes:** %s\n\n", themeLinks)

	if story.Notes != "" {
		b.WriteString("## Notes\n\n" + story.Notes + "\n\n")
	}

	return b.String()
}

func generateBacklogFile(item *workindex.BacklogItem, project string) string {
	tags := []string{project, "backlog", string(item.Status)}
	if item.Theme != "" {
		tags = append(tags, item.Theme)
	}
	fm := frontmatter([]fmPair{
		{"type", "backlog"},
		{"id", item.ID},
		{"project", project},
		{"status", string(item.Status)},
		{"theme", item.Theme},
		{"tags", tags},
	})

	var b strings.Builder
	b.WriteString(fm + "\n\n# " + item.ID + "\n\n")
	b.WriteString("## Summary\n\n" + item.Summary + "\n\n")

	if item.Theme != "" {
		fmt.Fprintf(&b, "**Theme:** [[%s]]\n\n", item.Theme)
	}
	if len(item.RelatedSprints) > 0 {
		fmt.Fprintf(&b, "**Related Sprints:** %s\n\n", wikiLinks(item.RelatedSprints))
	}

	return b.String()
}

func generateThemeFile(theme, project string, doc *workindex.Document) string {
	fm := frontmatter([]fmPair{
		{"type", "theme"},
		{"id", theme},
		{"project", project},
		{"tags", []string{project, "theme", theme}},
	})

	var b strings.Builder
	b.WriteString(fm + "\n\n# Theme: " + theme + "\n\n")

	var sprints []workindex.Sprint
	for _, sprint := range doc.Sprints {
		for _, t := range sprint.Themes {
			if t == theme {
				sprints = append(sprints, sprint)
				break
			}
		}
	}

	if len(sprints) > 0 {
		b.WriteString("## Sprints\n\n")
		for _, sprint := range sprints {
			fmt.Fprintf(&b, "- [[%s]] (%s)\n", sprint.ID, sprint.Status)
		}
		b.WriteString("\n")

		b.WriteString("## Stories\n\n")
		for _, sprint := range sprints {
			for _, story := range sprint.Stories {
				fmt.Fprintf(&b, "- [[%s]] (%s) - %s\n", story.ID, story.Status, sprint.ID)
			}
		}
		b.WriteString("\n")
	}

	var backlog []workindex.BacklogItem
	for _, item := range doc.Backlog {
		if item.Theme == theme {
			backlog = append(backlog, item)
		}
	}
	if len(backlog) > 0 {
		b.WriteString("## Backlog\n\n")
		for _, item := range backlog {
			fmt.Fprintf(&b, "- [[%s]] (%s)\n", item.ID, item.Status)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func generateProjectDashboard(project string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Dashboard\n\n", project)
	fmt.Fprintf(&b, "*Generated: %s*\n\n", timeNow().Format("2006-01-02 15:04"))

	sections := []struct {
		title string
		query string
	}{
		{"Active Sprints", fmt.Sprintf("TABLE status, goal\nFROM \"projects/%s/Sprints\"\nWHERE status = \"active\"", project)},
		{"In Progress", fmt.Sprintf("TABLE sprint, status\nFROM \"projects/%s/Stories\"\nWHERE status = \"in_progress\"", project)},
		{"Backlog (Todo)", fmt.Sprintf("TABLE theme, status\nFROM \"projects/%s/Backlog\"\nWHERE status = \"todo\"", project)},
		{"All Stories by Status", fmt.Sprintf("TABLE sprint, status\nFROM \"projects/%s/Stories\"\nSORT status ASC", project)},
		{"Themes", fmt.Sprintf("LIST\nFROM \"projects/%s/Themes\"", project)},
		{"Guidance", fmt.Sprintf("LIST\nFROM \"projects/%s/Guidance\"\nWHERE type = \"guidance\"", project)},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n```dataview\n%s\n```\n\n", s.title, s.query)
	}

	return b.String()
}

func generateGlobalDashboard(reg *registry.Registry) string {
	var b strings.Builder
	b.WriteString("# WorkSync Global Dashboard\n\n")
	fmt.Fprintf(&b, "*Generated: %s*\n\n", timeNow().Format("2006-01-02 15:04"))

	b.WriteString("## Projects\n\n")
	for _, name := range reg.Names() {
		project, _ := reg.Lookup(name)
		fmt.Fprintf(&b, "- **[[%s Dashboard|%s]]** - %s\n", name, name, project.Description)
	}
	b.WriteString("\n")

	b.WriteString("## All Active Sprints\n\n```dataview\nTABLE project, status, goal\nFROM \"projects\"\nWHERE type = \"sprint\" AND status = \"active\"\n```\n\n")
	b.WriteString("## All In Progress Stories\n\n```dataview\nTABLE project, sprint, status\nFROM \"projects\"\nWHERE type = \"story\" AND status = \"in_progress\"\n```\n\n")
	b.WriteString("## Recent History\n\nSee individual project dashboards for history.\n")

	return b.String()
}

func generateGuidanceFile(name, content, project, source string) string {
	fm := frontmatter([]fmPair{
		{"type", "guidance"},
		{"id", name},
		{"project", project},
		{"source", source},
		{"tags", []string{project, "guidance", source}},
	})
	return fm + "\n\n" + content
}

func generateGuidanceIndex(project string, guidance registry.Guidance) string {
	var b strings.Builder
	b.WriteString("---\ntype: guidance-index\nproject: " + project + "\n---\n\n")
	fmt.Fprintf(&b, "# %s Guidance\n\n", project)

	b.WriteString("## Foundational (Inherited)\n\n")
	if len(guidance.Inherit) > 0 {
		for _, name := range guidance.Inherit {
			fmt.Fprintf(&b, "- [[%s]]\n", name)
		}
	} else {
		b.WriteString("*No inherited guidance*\n")
	}

	b.WriteString("\n## Project-Specific\n\n")
	if len(guidance.Project) > 0 {
		for _, ref := range guidance.Project {
			fmt.Fprintf(&b, "- [[%s]]\n", ref.Name)
		}
	} else {
		b.WriteString("*No project-specific guidance*\n")
	}
	b.WriteString("\n")

	return b.String()
}
