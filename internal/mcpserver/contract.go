package mcpserver

// EntityRefsGuide documents how entities and their metadata are addressed.
// It is served as the othala://entity-refs resource so MCP clients can learn
// the addressing model before calling the polymorphic tools.
const EntityRefsGuide = `# Othala Entity Reference Guide

Everything in Othala is an entity with a string id. Five typed entities
exist:

| entity_type | what it is |
|-------------|------------|
| note        | markdown document with title and body |
| task        | actionable item with status, priority, optional due date |
| event       | calendar entry with a start and end timestamp |
| journal     | dated entry (one per day) with optional mood and energy |
| file        | uploaded binary stored as a blob |

## Addressing

Metadata tools take an (entity_type, entity_id) pair. The same tag,
property, attachment, embedding, and link machinery works for every
entity type. For example:

- tag_entity with entity_type "task" and entity_id "abc" tags a task
- set_property works on a journal entry exactly like on a note

## Tags

Tags are global and identified by slug: lowercase, kebab-case, with "/"
allowed for hierarchy (e.g. "projects/othala"). Tagging with an unknown
slug creates the tag. Inside a note body, "#hashtags" are turned into
attached tags automatically when the note is created or its body updated.

## Properties

A property is a named, typed value on an entity. Setting a property with
an existing name overwrites it. value_type must be one of: string,
number, boolean, date, json. The value itself is always passed as a
string and interpreted by the client.

## Links and backlinks

Links are directed edges between entities. Inside a note body,
"[[Wikilink Title]]" creates a link edge to the note with that exact
title, if one exists. Unresolved wikilinks are ignored. get_backlinks
lists edges pointing at a note, as "src_type/src_id" pairs.

## Tasks

Task status is one of: todo, doing, done, blocked, canceled. Priority
runs 1 (highest) to 5 (lowest), defaulting to 3.
`
