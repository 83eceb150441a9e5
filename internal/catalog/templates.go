package catalog

import "github.com/jorge-barreto/pipecraft/internal/pipeline"

var templates = []pipeline.Template{
	{
		ID:               "nodejs-aws",
		Name:             "Node.js on AWS",
		Description:      "A pipeline for deploying Node.js applications to AWS.",
		Platform:         pipeline.GitHubActions,
		DeploymentTarget: pipeline.TargetAWS,
		Language:         pipeline.JavaScript,
		Stages: []pipeline.Stage{
			{ID: "checkout", Name: "Checkout", Type: pipeline.StageBuild, Commands: cmds("uses: actions/checkout@v3")},
			{ID: "setup-node", Name: "Setup Node.js", Type: pipeline.StageBuild, Commands: cmds(
				"uses: actions/setup-node@v3",
				"with:",
				"  node-version: 16",
				"  cache: npm",
			)},
			{ID: "install", Name: "Install Dependencies", Type: pipeline.StageBuild, Commands: cmds("run: npm ci")},
			{ID: "test", Name: "Run Tests", Type: pipeline.StageTest, Commands: cmds("run: npm test")},
			{ID: "build", Name: "Build Application", Type: pipeline.StageBuild, Commands: cmds("run: npm run build")},
			{ID: "docker-build", Name: "Build Docker Image", Type: pipeline.StageBuild, Commands: cmds(
				"run: docker build -t my-app:${{ github.sha }} .",
			)},
			{ID: "deploy", Name: "Deploy to AWS", Type: pipeline.StageDeploy, Commands: cmds(
				"run: |",
				"  aws ecr get-login-password --region ${{ secrets.AWS_REGION }} | docker login --username AWS --password-stdin ${{ secrets.AWS_ECR_REPOSITORY }}",
				"  docker tag my-app:${{ github.sha }} ${{ secrets.AWS_ECR_REPOSITORY }}:${{ github.sha }}",
				"  docker push ${{ secrets.AWS_ECR_REPOSITORY }}:${{ github.sha }}",
				"  aws ecs update-service --cluster ${{ secrets.AWS_ECS_CLUSTER }} --service ${{ secrets.AWS_ECS_SERVICE }} --force-new-deployment",
			)},
		},
		Dockerfile: `FROM node:16-alpine

WORKDIR /app

COPY package*.json ./
RUN npm ci

COPY . .
RUN npm run build

EXPOSE 3000
CMD ["npm", "start"]`,
	},
	{
		ID:               "python-gcp",
		Name:             "Python on GCP",
		Description:      "A pipeline for deploying Python applications to Google Cloud Platform.",
		Platform:         pipeline.GitHubActions,
		DeploymentTarget: pipeline.TargetGCP,
		Language:         pipeline.Python,
		Stages: []pipeline.Stage{
			{ID: "checkout", Name: "Checkout", Type: pipeline.StageBuild, Commands: cmds("uses: actions/checkout@v3")},
			{ID: "setup-python", Name: "Setup Python", Type: pipeline.StageBuild, Commands: cmds(
				"uses: actions/setup-python@v4",
				"with:",
				`  python-version: "3.9"`,
				"  cache: pip",
			)},
			{ID: "install", Name: "Install Dependencies", Type: pipeline.StageBuild, Commands: cmds(
				"run: |",
				"  python -m pip install --upgrade pip",
				"  pip install -r requirements.txt",
			)},
			{ID: "test", Name: "Run Tests", Type: pipeline.StageTest, Commands: cmds("run: pytest")},
			{ID: "build", Name: "Build Docker Image", Type: pipeline.StageBuild, Commands: cmds(
				"run: |",
				"  docker build -t gcr.io/${{ secrets.GCP_PROJECT_ID }}/my-app:${{ github.sha }} .",
			)},
			{ID: "deploy", Name: "Deploy to GCP", Type: pipeline.StageDeploy, Commands: cmds(
				"uses: google-github-actions/auth@v1",
				"with:",
				"  credentials_json: ${{ secrets.GCP_SA_KEY }}",
				"run: |",
				"  gcloud auth configure-docker",
				"  docker push gcr.io/${{ secrets.GCP_PROJECT_ID }}/my-app:${{ github.sha }}",
				"  gcloud run deploy my-app --image gcr.io/${{ secrets.GCP_PROJECT_ID }}/my-app:${{ github.sha }} --platform managed --region us-central1",
			)},
		},
		Dockerfile: `FROM python:3.9-slim

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

CMD ["python", "app.py"]`,
	},
	{
		ID:               "java-azure",
		Name:             "Java on Azure",
		Description:      "A pipeline for deploying Java applications to Microsoft Azure.",
		Platform:         pipeline.GitHubActions,
		DeploymentTarget: pipeline.TargetAzure,
		Language:         pipeline.Java,
		Stages: []pipeline.Stage{
			{ID: "checkout", Name: "Checkout", Type: pipeline.StageBuild, Commands: cmds("uses: actions/checkout@v3")},
			{ID: "setup-java", Name: "Setup Java", Type: pipeline.StageBuild, Commands: cmds(
				"uses: actions/setup-java@v3",
				"with:",
				`  distribution: "temurin"`,
				`  java-version: "17"`,
				"  cache: maven",
			)},
			{ID: "build", Name: "Build with Maven", Type: pipeline.StageBuild, Commands: cmds("run: mvn -B package --file pom.xml")},
			{ID: "test", Name: "Run Tests", Type: pipeline.StageTest, Commands: cmds("run: mvn test")},
			{ID: "build-docker", Name: "Build Docker Image", Type: pipeline.StageBuild, Commands: cmds(
				"run: docker build -t myapp:${{ github.sha }} .",
			)},
			{ID: "login-azure", Name: "Login to Azure", Type: pipeline.StageDeploy, Commands: cmds(
				"uses: azure/login@v1",
				"with:",
				"  creds: ${{ secrets.AZURE_CREDENTIALS }}",
			)},
			{ID: "deploy", Name: "Deploy to Azure App Service", Type: pipeline.StageDeploy, Commands: cmds(
				"uses: azure/webapps-deploy@v2",
				"with:",
				`  app-name: "my-java-app"`,
				`  images: "myapp:${{ github.sha }}"`,
			)},
		},
		Dockerfile: `FROM maven:3.8.5-openjdk-17 AS build
WORKDIR /app
COPY pom.xml .
COPY src ./src
RUN mvn clean package -DskipTests

FROM openjdk:17-jdk-slim
WORKDIR /app
COPY --from=build /app/target/*.jar app.jar
ENTRYPOINT ["java", "-jar", "app.jar"]`,
	},
	{
		ID:               "microservices-kubernetes",
		Name:             "Microservices on Kubernetes",
		Description:      "A pipeline for deploying microservices to Kubernetes.",
		Platform:         pipeline.GitHubActions,
		DeploymentTarget: pipeline.TargetCustom,
		Language:         pipeline.TypeScript,
		Stages: []pipeline.Stage{
			{ID: "checkout", Name: "Checkout", Type: pipeline.StageBuild, Commands: cmds("uses: actions/checkout@v3")},
			{ID: "setup-node", Name: "Setup Node.js", Type: pipeline.StageBuild, Commands: cmds(
				"uses: actions/setup-node@v3",
				"with:",
				"  node-version: 16",
				"  cache: npm",
			)},
			{ID: "install", Name: "Install Dependencies", Type: pipeline.StageBuild, Commands: cmds("run: npm ci")},
			{ID: "build", Name: "Build Services", Type: pipeline.StageBuild, Commands: cmds("run: npm run build")},
			{ID: "test", Name: "Run Tests", Type: pipeline.StageTest, Commands: cmds("run: npm test")},
			{ID: "docker-build", Name: "Build Docker Images", Type: pipeline.StageBuild, Commands: cmds(
				"run: |",
				"  for service in ./services/*; do",
				`    if [ -d "$service" ]; then`,
				"      service_name=$(basename $service)",
				"      docker build -t ${{ secrets.DOCKER_REGISTRY }}/$service_name:${{ github.sha }} $service",
				"      docker push ${{ secrets.DOCKER_REGISTRY }}/$service_name:${{ github.sha }}",
				"    fi",
				"  done",
			)},
			{ID: "deploy", Name: "Deploy to Kubernetes", Type: pipeline.StageDeploy, Commands: cmds(
				"uses: azure/k8s-set-context@v3",
				"with:",
				"  kubeconfig: ${{ secrets.KUBE_CONFIG }}",
				"run: |",
				"  for service in ./services/*; do",
				`    if [ -d "$service" ]; then`,
				"      service_name=$(basename $service)",
				"      envsubst < $service/k8s/deployment.yaml | kubectl apply -f -",
				"      kubectl rollout status deployment/$service_name",
				"    fi",
				"  done",
			)},
		},
		Dockerfile: `FROM node:16-alpine as builder

WORKDIR /app
COPY package*.json ./
RUN npm ci
COPY . .
RUN npm run build

FROM node:16-alpine
WORKDIR /app
COPY --from=builder /app/dist ./dist
COPY --from=builder /app/node_modules ./node_modules
COPY package*.json ./

EXPOSE 3000
CMD ["npm", "start"]`,
	},
}
