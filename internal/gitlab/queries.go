package gitlab

// Hand-written GraphQL operation strings. Variables are named so the
// transport can pass them positionally through the variables object.

const queryMergeRequestDetail = `query mergeRequestDetail($fullPath: ID!, $iid: String!) {
  project(fullPath: $fullPath) {
    mergeRequest(iid: $iid) {
      iid
      title
      description
      state
      webUrl
      createdAt
      updatedAt
      mergedAt
      draft
      targetBranch
      sourceBranch
      reference
      userNotesCount
      sourceProject {
        name
        fullPath
        webUrl
      }
      diffRefs {
        baseSha
        headSha
        startSha
      }
      author {
        username
        name
        avatarUrl
        webUrl
      }
      labels(first: 100) {
        nodes {
          title
          color
        }
      }
      milestone {
        title
      }
      awardEmoji(first: 100) {
        nodes {
          name
          user {
            username
            name
            avatarUrl
            webUrl
          }
        }
      }
    }
  }
}`

const mutationSetDraft = `mutation mergeRequestSetDraft($fullPath: ID!, $iid: String!, $draft: Boolean!) {
  mergeRequestSetDraft(input: {projectPath: $fullPath, iid: $iid, draft: $draft}) {
    mergeRequest {
      draft
    }
    errors
  }
}`
