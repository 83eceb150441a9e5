package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with pipecraft",
		Content: topicQuickstart,
	},
	{
		Name:    "format",
		Title:   "Pipeline File Reference",
		Summary: "pipecraft.yaml / pipecraft.hcl schema, fields, and defaults",
		Content: topicFormat,
	},
	{
		Name:    "generators",
		Title:   "Generated Files",
		Summary: "GitHub Actions, Jenkinsfile, and Dockerfile output rules",
		Content: topicGenerators,
	},
	{
		Name:    "templates",
		Title:   "Templates",
		Summary: "Built-in starter pipelines and how to extend them",
		Content: topicTemplates,
	},
	{
		Name:    "simulate",
		Title:   "Simulation",
		Summary: "The mock six-step run and its reports",
		Content: topicSimulate,
	},
	{
		Name:    "server",
		Title:   "HTTP API",
		Summary: "Editing a pipeline over HTTP with 'pipecraft serve'",
		Content: topicServer,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a project:

    cd your-project
    pipecraft init

   This creates pipecraft.yaml with a small checkout/build/test pipeline.

2. Edit pipecraft.yaml. A pipeline is a list of stages; each stage has
   an id, a list of commands, and optionally the ids it depends on.

3. Inspect the pipeline and the order its jobs will be emitted in:

    pipecraft show

   "pipecraft doctor" lists anything the generators will drop or
   fill with a placeholder.

4. Generate the CI files:

    pipecraft generate --out .

   Existing files are never overwritten unless you pass --force.
   Use --stdout to print instead of writing.

5. Or start from a built-in template:

    pipecraft templates
    pipecraft new --template nodejs-aws --name "My App"
`

const topicFormat = `Pipeline File Reference
=======================

pipecraft looks for pipecraft.yaml, then pipecraft.hcl, in the current
directory and its parents. Pass --file to use another path.

Top-level fields (YAML):

    name               required unless template is set
    description        free text
    platform           github-actions (default), jenkins, gitlab-ci, azure-devops
    deployment-target  custom (default), aws, azure, gcp
    language           javascript, typescript, python, java, csharp, go, ...
    template           optional template id; its stages come first
    stages             list of stages (required unless template is set)

Stage fields:

    id           required, must match [A-Za-z_][A-Za-z0-9_-]*
    name         display name, defaults to id
    type         build, test, deploy, notify, or custom (default)
    commands     list of command lines (see below), at least one
    depends-on   ids of stages that must finish first
    environment  map of environment variables
    artifacts    paths to upload when the stage succeeds

Commands
--------

Each line is classified by its prefix:

    uses: <action>     reference a reusable action
    with:              begins the action's parameters
    run: <command>     a shell command
    anything else      raw line, emitted verbatim (parameters, script body)

A "run: |" line followed by indented raw lines is a multi-line script.
A single YAML block string may hold several lines.

HCL
---

The same fields in HCL, with stages as labelled blocks and
underscores instead of dashes:

    name = "web"
    deployment_target = "aws"

    stage "build" {
      type       = "build"
      depends_on = ["checkout"]
      commands   = ["run: make"]
    }

Validation
----------

Unknown types, platforms or targets, duplicate ids, dependencies on
stages that do not exist, and dependency cycles are all rejected when
the file is loaded.
`

const topicGenerators = `Generated Files
===============

GitHub Actions (github-actions.yml)
-----------------------------------

Jobs are emitted in dependency order: every stage appears after all the
stages it depends on. Stages with no ordering constraint keep the order
they were declared in. Each job lists its direct dependencies under
"needs:", runs on ubuntu-latest, and is triggered by pushes and pull
requests to main.

"uses:" lines become action steps, "run:" lines become named steps
titled after the stage, and raw lines are indented under the step that
precedes them. Environment variables become "env:" and artifacts are
uploaded with actions/upload-artifact.

Jenkinsfile
-----------

A declarative pipeline with one stage per pipeline stage, in declared
order. Shell commands become "sh" steps; action references and their
parameters have no Jenkins equivalent and are skipped. Environment
variables become an "environment" block and artifacts are archived on
success.

Dockerfile
----------

Chosen by language: javascript and typescript share a Node image;
python, java, csharp and go have their own. Any other language gets a
placeholder to fill in.
`

const topicTemplates = `Templates
=========

Four starter pipelines are built in:

    nodejs-aws                 Node.js on AWS
    python-gcp                 Python on GCP
    java-azure                 Java on Azure
    microservices-kubernetes   Microservices on Kubernetes

List them with "pipecraft templates" and inspect one with
"pipecraft templates <id>". Create a pipeline file from one with
"pipecraft new --template <id>".

A pipeline file may also name a template and add stages of its own:

    template: nodejs-aws
    stages:
      - id: notify
        type: notify
        depends-on: [deploy]
        commands: ["run: ./notify.sh"]

Template stages keep their ids so new stages can depend on them.
`

const topicSimulate = `Simulation
==========

"pipecraft simulate" plays a scripted six-step run:

    checkout, install, build, test, docker, deploy

Nothing is executed. Each step prints canned log lines, then succeeds
or fails at random (roughly one in ten steps fails; the test step
always passes). The run stops at the first failure.

Flags:

    --fast          no delays between log lines
    --seed N        make outcomes repeatable
    --report PATH   write the finished run as JSON

Ctrl-C interrupts the run; the report records it as interrupted.
"pipecraft doctor --report PATH" shows where a reported run stopped
and the tail of that step's log.
`

const topicServer = `HTTP API
========

"pipecraft serve" holds one pipeline in memory and exposes it over
HTTP (default :8080, or PIPECRAFT_ADDR):

    POST   /pipeline                   create {name, platform, deploymentTarget, language}
    PUT    /pipeline                   replace it with a full pipeline document
    GET    /pipeline                   current pipeline
    DELETE /pipeline                   discard it
    POST   /pipeline/stages            append a stage
    PATCH  /pipeline/stages/{id}       change fields of a stage
    DELETE /pipeline/stages/{id}       remove a stage
    POST   /pipeline/stages/reorder    move {from, to}
    GET    /pipeline/files             all generated files
    GET    /pipeline/files/{name}      one generated file, as text
    GET    /pipeline/check             doctor findings for the pipeline
    GET    /templates                  list templates
    POST   /templates/{id}/load        replace the pipeline with a template
    GET    /dockerfile/{language}      Dockerfile for a language
    POST   /simulate[?seed=N]          run the simulation and return it

Errors are returned as {"error": "..."} with 404 for a missing pipeline
or stage, 400 for invalid input, and 422 when dependencies form a cycle.
`
