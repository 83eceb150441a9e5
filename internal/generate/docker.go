package generate

import "github.com/jorge-barreto/pipecraft/internal/pipeline"

// DockerfilePlaceholder is returned for languages without a Dockerfile body.
const DockerfilePlaceholder = "# Please specify a programming language to generate a Dockerfile."

const nodeDockerfile = `FROM node:16-alpine

WORKDIR /app

COPY package*.json ./
RUN npm ci

COPY . .
RUN npm run build

EXPOSE 3000
CMD ["npm", "start"]`

const pythonDockerfile = `FROM python:3.9-slim

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

CMD ["python", "app.py"]`

const javaDockerfile = `FROM maven:3.8.5-openjdk-17 AS build
WORKDIR /app
COPY pom.xml .
COPY src ./src
RUN mvn clean package -DskipTests

FROM openjdk:17-jdk-slim
WORKDIR /app
COPY --from=build /app/target/*.jar app.jar
ENTRYPOINT ["java", "-jar", "app.jar"]`

const csharpDockerfile = `FROM mcr.microsoft.com/dotnet/sdk:6.0 AS build
WORKDIR /app

COPY *.csproj ./
RUN dotnet restore

COPY . ./
RUN dotnet publish -c Release -o out

FROM mcr.microsoft.com/dotnet/aspnet:6.0
WORKDIR /app
COPY --from=build /app/out .
ENTRYPOINT ["dotnet", "YourApp.dll"]`

const goDockerfile = `FROM golang:1.18-alpine AS build

WORKDIR /app
COPY go.* ./
RUN go mod download

COPY . .
RUN go build -o /app/main .

FROM alpine:latest
WORKDIR /app
COPY --from=build /app/main .
EXPOSE 8080
CMD ["/app/main"]`

var dockerfiles = map[pipeline.Language]string{
	pipeline.JavaScript: nodeDockerfile,
	pipeline.TypeScript: nodeDockerfile,
	pipeline.Python:     pythonDockerfile,
	pipeline.Java:       javaDockerfile,
	pipeline.CSharp:     csharpDockerfile,
	pipeline.Go:         goDockerfile,
}

// Dockerfile returns the Dockerfile body for lang, or DockerfilePlaceholder
// when there is none.
func Dockerfile(lang pipeline.Language) string {
	if body, ok := dockerfiles[lang]; ok {
		return body
	}
	return DockerfilePlaceholder
}

// DockerfileLanguages lists the languages with a Dockerfile body.
func DockerfileLanguages() []pipeline.Language {
	return []pipeline.Language{
		pipeline.JavaScript, pipeline.TypeScript, pipeline.Python,
		pipeline.Java, pipeline.CSharp, pipeline.Go,
	}
}
